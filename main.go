package main

import "github.com/naka-gawa/evolution-metrics/cmd"

func main() {
	cmd.Execute()
}
