package main

import "github.com/andrewarrow/scenecast/cmd"

func main() {
	cmd.Execute()
}
