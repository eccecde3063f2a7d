package main

import "github.com/MeKo-Tech/kviit/cmd/kviit/cmd"

func main() {
	cmd.Execute()
}
