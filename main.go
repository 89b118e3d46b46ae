/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package main

import "distributor/cmd"

func main() {
	cmd.Execute()
}
