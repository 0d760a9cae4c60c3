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

package replica

import "github.com/pkg/errors"

// Various errors the manager might return.
var (
	// ErrInvalidDirectory represents a replica directory that does not exist or is not a directory.
	ErrInvalidDirectory = errors.New("invalid replica directory")
	// ErrManagerClosed represents an operation against a closed manager.
	ErrManagerClosed = errors.New("replica manager closed")
)
