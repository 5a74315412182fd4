// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package value

import "context"

// Loader lazily populates or persists a Value on demand. Higher layers
// attach one to values backed by a store; the wire codec ignores it.
type Loader interface {
	// Load fills target from the backing store
	Load(ctx context.Context, target *Value) error
	// Save persists source to the backing store
	Save(ctx context.Context, source Value) error
}

// Attach sets the loader used by Load and Save
func (v *Value) Attach(loader Loader) {
	v.loader = loader
}

// Loader returns the attached loader, if any
func (v Value) Loader() Loader {
	return v.loader
}

// Load asks the attached loader to populate the value.
// It is a no-op when no loader is attached.
func (v *Value) Load(ctx context.Context) error {
	if v.loader == nil {
		return nil
	}
	return v.loader.Load(ctx, v)
}

// Save asks the attached loader to persist the value.
// It is a no-op when no loader is attached.
func (v Value) Save(ctx context.Context) error {
	if v.loader == nil {
		return nil
	}
	return v.loader.Save(ctx, v)
}
