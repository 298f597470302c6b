package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var stdin = bufio.NewReader(os.Stdin)

func readLine() string {
	input, _ := stdin.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptWithDefault shows a prompt with default value in brackets.
// Returns the user's input, or the default if input is empty.
func promptWithDefault(label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if input := readLine(); input != "" {
		return input
	}
	return defaultVal
}

// promptRequired prompts until a non-empty value is provided.
func promptRequired(label string) string {
	for {
		fmt.Printf("%s: ", label)
		if input := readLine(); input != "" {
			return input
		}
		fmt.Println("  Value required")
	}
}

// promptChoice shows a numbered menu and returns the chosen option.
// defaultIdx is 0-based; entering nothing picks it.
func promptChoice(label string, options []string, defaultIdx int) string {
	fmt.Println(label)
	for i, opt := range options {
		marker := " "
		if i == defaultIdx {
			marker = "*"
		}
		fmt.Printf("  %s %d) %s\n", marker, i+1, opt)
	}
	for {
		fmt.Printf("Choice [%d]: ", defaultIdx+1)
		input := readLine()
		if input == "" {
			return options[defaultIdx]
		}
		n, err := strconv.Atoi(input)
		if err == nil && n >= 1 && n <= len(options) {
			return options[n-1]
		}
		fmt.Printf("  Enter a number between 1 and %d\n", len(options))
	}
}

// promptYesNo asks a y/n question.
func promptYesNo(label string, defaultYes bool) bool {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	for {
		fmt.Printf("%s [%s]: ", label, hint)
		switch strings.ToLower(readLine()) {
		case "":
			return defaultYes
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Println("  Answer y or n")
	}
}

// promptInt asks for an integer, empty input returning defaultVal.
func promptInt(label string, defaultVal int) int {
	for {
		fmt.Printf("%s [%d]: ", label, defaultVal)
		input := readLine()
		if input == "" {
			return defaultVal
		}
		if n, err := strconv.Atoi(input); err == nil {
			return n
		}
		fmt.Println("  Enter a number")
	}
}
