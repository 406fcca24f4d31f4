package main

import "github.com/radcom-pso/vdrift/cmd"

func main() {
	cmd.Execute()
}
