/*
 * errors.go, part of goneb.
 *
 *
 * Copyright 2024 The goneb developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package neb

import "fmt"

//DecoratedError is the interface for errors that the packages in this
//library implement. The Decorate method allows adding and retrieving
//info from the error as it is passed up the calling stack, without
//changing its type or wrapping it around something else. If passed an
//empty string it just returns the current decoration slice.
type DecoratedError interface {
	Error() string
	Decorate(string) []string
}

//Error is the concrete error type of the neb package.
type Error struct {
	message string
	image   int //the image concerned, or -1
	deco    []string
}

//NewError returns an Error concerning the image with the given index.
//Use a negative index for errors not tied to one image.
func NewError(message string, image int) *Error {
	return &Error{message: message, image: image}
}

func (err *Error) Error() string {
	if err.image >= 0 {
		return fmt.Sprintf("goneb: image %d: %s", err.image, err.message)
	}
	return fmt.Sprintf("goneb: %s", err.message)
}

//Decorate adds the dec string to the decoration slice of the error
//and returns the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Image returns the index of the image the error concerns, or -1.
func (err *Error) Image() int { return err.image }

//errDecorate decorates err with the caller's name before returning
//it. Errors from outside the library (context cancellations, IO
//errors) don't implement DecoratedError; those get wrapped into an
//Error first.
func errDecorate(err error, caller string) error {
	err2, ok := err.(DecoratedError)
	if !ok {
		err2 = NewError(err.Error(), -1)
	}
	err2.Decorate(caller)
	return err2
}

//Sentinel messages. The concrete errors carry one of these, plus
//whatever context (image index, file) applies.
const (
	ErrProviderFailed  = "energy/force provider failed"
	ErrPathMismatch    = "path endpoints/images differ in atom count or species ordering"
	ErrInvalidMethod   = "invalid NEB method"
	ErrSharedProvider  = "two images share the same calculator; each image needs its own"
	ErrNilCalculator   = "image has no calculator"
	ErrTooFewImages    = "a band needs at least 3 images"
	ErrUnknownUnit     = "energy unit should be kcal/mol, kJ/mol, Hartree or eV"
	ErrMissingEndpoint = "endpoint energies are required by this method but not available"
)
