package main

import "github.com/tkinsella/dublin-events/internal/cli"

func main() {
	cli.Execute()
}
