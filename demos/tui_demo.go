// Demo program to showcase the Kiln run view with a scripted run.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kiln-agent/src/contracts"
	"kiln-agent/src/tui"
)

func main() {
	fmt.Println("Launching run view with a scripted pipeline run...")
	time.Sleep(500 * time.Millisecond)

	watcher := tui.NewWatcher()
	go playRun(watcher)

	model := tui.NewRunModel("run-demo", "acme/widget", "4f2c1ab9de00", watcher.Events())
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running view: %v\n", err)
		os.Exit(1)
	}
}

// playRun feeds a realistic build-then-test sequence to the watcher.
func playRun(watcher *tui.Watcher) {
	buildLines := []string{
		"    Updating crates.io index",
		"   Compiling serde v1.0.210",
		"   Compiling widget v0.4.2 (/work/widget)",
		"    Finished `dev` profile [unoptimized + debuginfo] target(s) in 14.31s",
	}
	testLines := []string{
		"     Running unittests src/lib.rs (target/debug/deps/widget-8c53a1)",
		"running 24 tests",
		"test parse::roundtrip ... ok",
		"test parse::rejects_empty ... ok",
		"test result: ok. 24 passed; 0 failed; 0 ignored",
	}

	watcher.OnState(contracts.StateBuilding)
	for _, line := range buildLines {
		time.Sleep(400 * time.Millisecond)
		watcher.OnOutput("build", line)
	}

	watcher.OnState(contracts.StateTesting)
	for _, line := range testLines {
		time.Sleep(400 * time.Millisecond)
		watcher.OnOutput("test", line)
	}

	time.Sleep(400 * time.Millisecond)
	watcher.Finish(&contracts.RunRecord{
		RunID: "run-demo",
		State: contracts.StateSucceeded,
		Steps: []contracts.StepResult{
			{Name: "build", Status: contracts.StepPassed, DurationMS: 14310},
			{Name: "test", Status: contracts.StepPassed, DurationMS: 5120},
		},
		Tests: &contracts.TestSummary{Total: 24},
	})
}
