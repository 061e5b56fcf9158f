package main

import "github.com/anatolykoptev/go-salamoonder/internal/cli"

func main() {
	cli.Execute()
}
