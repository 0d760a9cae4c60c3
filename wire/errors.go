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

package wire

import "github.com/pkg/errors"

// Various errors the codec might return.
var (
	// ErrTruncated represents a buffer that ends in the middle of an encoded field.
	ErrTruncated = errors.New("unexpected end of buffer")
	// ErrUnsupportedType represents a value kind or type marker outside the closed set.
	ErrUnsupportedType = errors.New("unsupported value type")
	// ErrOverflow represents a varint longer than 64 bits can hold.
	ErrOverflow = errors.New("varint overflows 64 bits")
)
