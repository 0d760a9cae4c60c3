/*
 * Copyright 2026 The LiteSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rpc

import "github.com/pkg/errors"

// Various errors the client might return.
var (
	// ErrQueryFailed represents a failure reported by the server in a query
	// response; the accompanying result payload is discarded. Distinct from
	// a transport failure, which surfaces as a grpc status error.
	ErrQueryFailed = errors.New("query failed on server")
	// ErrNoResponse represents a query stream that closed before delivering
	// a response.
	ErrNoResponse = errors.New("no response received")
)
