package main

import "github.com/raceng/strategy-engine-go/cmd"

func main() {
	cmd.Execute()
}
