package main

import "conquer/cmd/conquer/root"

func main() {
	root.Execute()
}
