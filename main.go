package main

import "travelmate/backend/cmd"

func main() {
	cmd.Execute()
}
