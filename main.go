package main

import "github.com/ValtisD/CardiacStockTracker-sub001/cmd"

func main() {
	cmd.Execute()
}
