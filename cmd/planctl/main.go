// Package main provides the planctl command line client
package main

import "github.com/smartmeals/v2/internal/cli"

func main() {
	cli.Execute()
}
