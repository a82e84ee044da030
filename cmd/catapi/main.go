package main

import "github.com/ollivarila/wsk2/cmd/catapi/cmd"

func main() {
	cmd.Execute()
}
