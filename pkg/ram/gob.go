// Copyright Go-Datalog Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package ram

// Gob refuses to serialise structs without exported fields, which the
// field-free node kinds below are.  Their identity is their type, so they
// marshal to nothing.

// GobEncode implements gob.GobEncoder.
func (c *True) GobEncode() ([]byte, error) { return nil, nil }

// GobDecode implements gob.GobDecoder.
func (c *True) GobDecode([]byte) error { return nil }

// GobEncode implements gob.GobEncoder.
func (c *False) GobEncode() ([]byte, error) { return nil, nil }

// GobDecode implements gob.GobDecoder.
func (c *False) GobDecode([]byte) error { return nil }

// GobEncode implements gob.GobEncoder.
func (e *AutoIncrement) GobEncode() ([]byte, error) { return nil, nil }

// GobDecode implements gob.GobDecoder.
func (e *AutoIncrement) GobDecode([]byte) error { return nil }

// GobEncode implements gob.GobEncoder.
func (e *UndefValue) GobEncode() ([]byte, error) { return nil, nil }

// GobDecode implements gob.GobDecoder.
func (e *UndefValue) GobDecode([]byte) error { return nil }
