// github.com/coder5617/MeshPDF - annotate, sign, print, and merge PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package engine

// EncryptedError indicates that a document requires a password.
type EncryptedError struct {
	Path string
}

func (err *EncryptedError) Error() string {
	return "document is encrypted: " + err.Path
}

// CorruptError indicates that a document could not be parsed.
type CorruptError struct {
	Path string
	Err  error
}

func (err *CorruptError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return "not a valid document" + middle + " (" + err.Path + ")"
}

func (err *CorruptError) Unwrap() error {
	return err.Err
}

// SerializeError indicates that writing the final output failed.
type SerializeError struct {
	Path string
	Err  error
}

func (err *SerializeError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return "writing document failed" + middle + " (" + err.Path + ")"
}

func (err *SerializeError) Unwrap() error {
	return err.Err
}
