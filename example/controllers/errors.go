package controllers

import "github.com/dmitrymomot/mvc"

// Errors renders every error status with the shared error view.
type Errors struct {
	c mvc.Context
}

// ErrorsDefinition registers the error controller for the statuses the
// blog produces.
func ErrorsDefinition() *mvc.ControllerDef[*Errors] {
	def := mvc.Controller("error", "error", func(c mvc.Context) (*Errors, error) {
		return &Errors{c: c}, nil
	})
	for _, code := range []string{"400", "403", "404", "405", "422", "500", "508"} {
		def.Action("error"+code, (*Errors).Show)
	}
	return def
}

func (e *Errors) Show(mvc.Vars) error {
	e.c.Response().SetViewFile("error")
	return nil
}
