package main

import "github.com/arko-chat/nativekit/internal/cli"

func main() {
	cli.Execute()
}
