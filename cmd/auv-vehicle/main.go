package main

import "github.com/oshokin/auv-alarm/cmd/auv-vehicle/cmd"

func main() {
	cmd.Execute()
}
