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

package client

import "github.com/pkg/errors"

// Various errors the driver might return.
var (
	// ErrEmptyCatalog represents a catalog switch to an empty name.
	ErrEmptyCatalog = errors.New("catalog cannot be empty")
	// ErrInvalidDSN represents a DSN the driver cannot parse.
	ErrInvalidDSN = errors.New("invalid DSN")
)
