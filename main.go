package main

import "github.com/AvaProtocol/aa-provider/cmd"

func main() {
	cmd.Execute()
}
