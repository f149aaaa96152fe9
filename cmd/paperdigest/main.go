package main

import "github.com/dgallion1/paperdigest/internal/cli"

func main() {
	cli.Execute()
}
