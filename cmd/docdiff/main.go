package main

import "github.com/loog-project/docdiff/cmd"

func main() {
	cmd.Execute()
}
