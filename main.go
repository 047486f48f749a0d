package main

import "github.com/user/vulnimport/cmd"

func main() {
	cmd.Execute()
}
