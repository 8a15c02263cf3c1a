package main

import "github.com/unibuild/unibuild/cmd/unibuild/internal"

func main() {
	internal.Execute()
}
