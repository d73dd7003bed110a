package main

import "github.com/stegomidi/stegomidi/cmd"

func main() {
	cmd.Execute()
}
