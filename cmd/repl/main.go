package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/sesam/prologcoin/engine"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/parser"

	"github.com/chzyer/readline"
)

var (
	consultFiles = flag.String("consult-files", "", "Comma-separated files to consult, in order")
	query        = flag.String("query", "", "Initial query to issue")
	interactive  = flag.Bool("interactive", true, "Whether the REPL is interactive")
)

type ctx struct {
	engine   *engine.Engine
	readline *readline.Instance
}

func main() {
	flag.Parse()
	if !*interactive && len(*query) == 0 {
		log.Fatal("No query provided for non-interactive REPL")
	}

	c := ctx{engine: engine.New()}
	for _, file := range strings.Split(*consultFiles, ",") {
		if len(file) == 0 {
			continue
		}
		consultFile(c.engine, file)
	}

	if !*interactive {
		c.runOnce(*query)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            "/tmp/readline-history",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()
	c.readline = rl

	c.mainLoop()
}

func consultFile(e *engine.Engine, filename string) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Print(err)
		return
	}
	if err := e.LoadSource(string(bs)); err != nil {
		log.Print(err)
	}
}

// conjoin turns a list of query goals into the single comma-conjoined goal
// Execute expects.
func conjoin(goals []logic.Term) *logic.Comp {
	if len(goals) == 1 {
		if c, ok := goals[0].(*logic.Comp); ok {
			return c
		}
		return logic.NewComp(",", goals[0], logic.Atom{Name: "true"})
	}
	result := goals[len(goals)-1]
	for i := len(goals) - 2; i >= 0; i-- {
		result = logic.NewComp(",", goals[i], result)
	}
	return result.(*logic.Comp)
}

func (c ctx) runOnce(query string) {
	goals, err := parser.ParseQuery(query)
	if err != nil {
		log.Print(err)
		return
	}
	ok, err := c.engine.Execute(conjoin(goals))
	if err != nil {
		log.Print(err)
		return
	}
	fmt.Println(printSolution(c.engine, ok))
}

func (c ctx) mainLoop() {
	if len(*query) > 0 {
		c.runQuery(*query)
	}
	for {
		text, isClose := c.readQuery()
		if isClose {
			return
		}
		c.runQuery(text)
	}
}

// runQuery executes text and then drives the ";"/"." solution-enumeration
// prompt until the user stops or solutions run out.
func (c ctx) runQuery(text string) {
	goals, err := parser.ParseQuery(text)
	if err != nil {
		log.Print(err)
		return
	}
	ok, err := c.engine.Execute(conjoin(goals))
	if err != nil {
		log.Print(err)
		return
	}
	fmt.Println(printSolution(c.engine, ok))
	if !ok {
		return
	}
	for c.readCommand() {
		next, err := c.engine.Next()
		if err != nil {
			log.Print(err)
			return
		}
		fmt.Println(printSolution(c.engine, next))
		if !next {
			return
		}
	}
}

func (c ctx) readQuery() (string, bool) {
	c.readline.SetPrompt("?- ")
	var lines []string
	for {
		line, err := c.readline.Readline()
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
		if !strings.HasSuffix(line, ".") {
			c.readline.SetPrompt("|  ")
			continue
		}
		break
	}
	query := strings.Join(lines, " ")
	c.readline.SaveHistory(query)
	return query, false
}

func printSolution(e *engine.Engine, ok bool) string {
	if !ok {
		return "false."
	}
	return e.GetResult()
}

// readCommand reads a ";" (keep going) or "." (stop) from the prompt,
// reporting whether the caller should request another solution.
func (c ctx) readCommand() bool {
	for {
		c.readline.SetPrompt("")
		line, err := c.readline.Readline()
		if err != nil {
			os.Exit(0)
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ";":
			return true
		case ".":
			return false
		default:
			log.Print("Expecting '.' or ';'")
		}
	}
}
