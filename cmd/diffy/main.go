package main

import "github.com/loog-project/diffy/cmd"

func main() {
	cmd.Execute()
}
