package main

import "github.com/swiftbulk/campaign-gateway/cmd"

func main() {
	cmd.Execute()
}
