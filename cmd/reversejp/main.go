package main

import "github.com/MeKo-Tech/reversejp/internal/cmd"

func main() {
	cmd.Execute()
}
