// Copyright 2025 The dynpb Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dynpb

import "github.com/nizox/dynpb/internal/errs"

// Code identifies which of the codec's error kinds occurred.
type Code = errs.Code

const (
	CodeEndOfStream      = errs.EndOfStream
	CodeMalformed        = errs.Malformed
	CodeVarintOverflow   = errs.VarintOverflow
	CodeBadUTF8          = errs.BadUTF8
	CodeWireTypeMismatch = errs.WireTypeMismatch
	CodeMaxDepthExceeded = errs.MaxDepthExceeded
	CodeOutOfMemory      = errs.OutOfMemory
	CodeMaxSizeExceeded  = errs.MaxSizeExceeded
	CodeMissingRequired  = errs.MissingRequired
)

// Error is returned by every Decode/Encode call that fails. Its Offset
// field gives the approximate byte offset into the input at which the
// failure occurred.
type Error = errs.Error
