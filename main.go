package main

import "github.com/iksnae/govchat/cmd"

func main() {
	cmd.Execute()
}
