package main

import "github.com/lukman83/trustrank/cmd"

func main() {
	cmd.Execute()
}
