/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/depscope/depscope/cmd"

func main() {
	cmd.Execute()
}
