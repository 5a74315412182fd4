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

package validation

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// TCPAddressValidator checks a host:port listen address. An empty host
// is accepted when allowAnyHost is set, meaning every interface.
type TCPAddressValidator struct {
	address      string
	allowAnyHost bool
}

var _ Validator = (*TCPAddressValidator)(nil)

// NewTCPAddressValidator validates address with a mandatory host
func NewTCPAddressValidator(address string) *TCPAddressValidator {
	return &TCPAddressValidator{address: address}
}

// NewListenAddressValidator validates address allowing ":port"
func NewListenAddressValidator(address string) *TCPAddressValidator {
	return &TCPAddressValidator{address: address, allowAnyHost: true}
}

// Validate implements Validator
func (a *TCPAddressValidator) Validate() error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(a.address))
	if err != nil {
		return fmt.Errorf("invalid address=(%s): %w", a.address, err)
	}

	number, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid address=(%s): %w", a.address, err)
	}

	switch {
	case number < 0 || number > 65535:
		return fmt.Errorf("invalid address=(%s): %w", a.address, errors.New("port out of range"))
	case host == "" && !a.allowAnyHost:
		return fmt.Errorf("invalid address=(%s): %w", a.address, errors.New("missing host"))
	}
	return nil
}
