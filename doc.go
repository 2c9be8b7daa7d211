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

// Package dynpb is a reflection-driven Protocol Buffers binary codec: given
// a compact, runtime-available schema describing a message (a
// [MessageTable]), it decodes arbitrary wire-format byte streams into
// in-memory [Message] instances, and re-encodes those instances back to
// wire format with byte-level round-trip fidelity.
//
// Unlike google.golang.org/protobuf, dynpb never generates or requires Go
// struct types for the messages it handles: a MessageTable can be
// hand-authored (see [NewMessageTable]) or produced by an external schema
// compiler, and [Message] values are addressed purely by field offset and
// type as described by that table. This makes it suitable for services that
// need to parse or re-encode Protobuf messages whose shape is only known at
// runtime.
//
// The data blocks of a decoded message and its submessages (scalar storage,
// presence bits and oneof case tags) and copies of string/bytes payloads are
// allocated from an [Arena]; see [NewArena] and [NewArenaBuffer].
// Repeated-field backing arrays, map fields and the Message values
// themselves are allocated from the Go heap, not from the Arena.
//
// # Support status
//
// This package implements decode and encode only: there is no JSON/text
// format support, no .proto source parsing, and no descriptor
// self-hosting -- those are treated as concerns of an external schema
// producer. Groups (the deprecated wire representation) are rejected at
// parse time rather than supported. See SPEC_FULL.md in this module's
// repository for the full functional scope.
package dynpb
