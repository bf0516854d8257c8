package main

import "github.com/oshokin/auv-alarm/cmd/auv-simulator/cmd"

func main() {
	cmd.Execute()
}
