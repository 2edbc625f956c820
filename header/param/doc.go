// Package param provides the ordered, case-insensitive parameter list carried
// by parameterized headers such as Content-type and Content-disposition, along
// with the names of the parameters this module gives meaning to.
package param
