package cmd

import (
	"flag"

	"github.com/etnz/accounts/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors complete flag values by flag name, other flags take any value.
var predictors = map[string]complete.Predictor{
	"k":           predict.Set{"cash", "loan", "stock", "bond"},
	"c":           predict.Files("*.json"),
	"r":           predict.Files("*.json"),
	"save":        predict.Files("*.json"),
	"instruments": predict.Files("*.json"),
	"accounts":    predict.Files("*.json"),
	"prices":      predict.Files("*.jsonl"),
	"store":       predict.Dirs("*"),
}

// Completion describes acc for shell completion.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(global),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: flags(fs)}
		switch c.(type) {
		case *importCmd:
			sub.Args = predict.Files("*.csv")
		case *watchCmd:
			sub.Args = predict.Dirs("*")
		case *topicCmd:
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		root.Sub[c.Name()] = sub
	}
	root.Sub["help"] = &complete.Command{Args: predict.Set(names())}
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := predictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}

func names() []string {
	var n []string
	for _, c := range Commands {
		n = append(n, c.Name())
	}
	return n
}
