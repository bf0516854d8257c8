package main

import "github.com/oshokin/auv-alarm/cmd/auv-controller/cmd"

func main() {
	cmd.Execute()
}
