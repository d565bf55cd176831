package main

// General API documentation for swaggo. Run `swag init -g cmd/answerd/main.go` to regenerate docs.
//
// @title           answerd API
// @version         1.0
// @description     HTTP API answering questions against supplied context with a locally hosted generative checkpoint.
//
// @contact.name   answerd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
