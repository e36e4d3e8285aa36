package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
)

// RunExtension attempts to find and execute an external acc-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// Global flags are passed to the extension as the environment variables they
// default from.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "acc-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", externalCmdName, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

func extensionEnv() []string {
	return []string{
		EnvStore + "=" + *storeDir,
		EnvDSN + "=" + *dsn,
		EnvAccounts + "=" + *accountsFile,
		EnvPrices + "=" + *pricesFile,
		EnvKafkaBrokers + "=" + *kafkaBrokers,
		EnvCurrency + "=" + *currency,
		"ACC_HTML=" + strconv.FormatBool(*htmlOutput),
	}
}
