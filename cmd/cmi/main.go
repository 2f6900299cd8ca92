package main

import "github.com/goplus/cmi/cmd/cmi/internal"

func main() {
	internal.Execute()
}
