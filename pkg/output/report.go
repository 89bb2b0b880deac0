package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethpandaops/confounds/pkg/batch"
	"github.com/ethpandaops/confounds/pkg/regressors"
	"github.com/ethpandaops/confounds/pkg/strategy"
	"github.com/nao1215/markdown"
)

// Report summarizes a batch as markdown
type Report struct {
	StrategyName string
	Strategy     strategy.Strategy
	Summary      *batch.Summary
	// Outputs maps an input to the table written for it
	Outputs map[string]string
}

// Write renders the report
func (r *Report) Write(w io.Writer) error {
	md := markdown.NewMarkdown(w)

	md.H1("Confound Regressors")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + r.Summary.RunID + "`"},
			{"Started", r.Summary.Started.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", r.Summary.Elapsed.String()},
			{"Strategy", r.StrategyName},
			{"Files", strconv.Itoa(len(r.Summary.Results))},
			{"Failed", strconv.Itoa(r.Summary.Failed())},
		},
	})
	md.PlainText("")

	md.H2("Strategy")
	md.PlainText("")
	entries := make([]string, len(r.Strategy.Entries))
	for i, e := range r.Strategy.Entries {
		entries[i] = e.String()
	}
	md.BulletList(entries...)
	md.PlainText("")

	r.writeFiles(md)
	r.writeFailures(md)

	return md.Build()
}

func (r *Report) writeFiles(md *markdown.Markdown) {
	md.H2("Files")
	md.PlainText("")

	rows := make([][]string, 0, len(r.Summary.Results))
	for _, res := range r.Summary.Results {
		if res.Failed() {
			rows = append(rows, []string{"`" + res.Input + "`", "failed", "", "", "", "", ""})
			continue
		}

		rows = append(rows, []string{
			"`" + res.Input + "`",
			"ok",
			strconv.Itoa(len(res.Set.Names)),
			groups(res.Set),
			strconv.Itoa(res.Set.Mask.Excluded()),
			r.output(res),
			directive(res),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Regressors", "Categories", "Scrubbed", "Output", "Directive"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (r *Report) writeFailures(md *markdown.Markdown) {
	if r.Summary.Failed() == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, r.Summary.Failed())
	for _, res := range r.Summary.Results {
		if !res.Failed() {
			continue
		}

		rows = append(rows, []string{"`" + res.Input + "`", res.Stage, strings.ReplaceAll(res.Err.Error(), "|", "\\|")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Stage", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (r *Report) output(res *batch.Result) string {
	if path, ok := r.Outputs[res.Input]; ok {
		return "`" + path + "`"
	}

	return ""
}

func groups(set *regressors.RegressorSet) string {
	parts := make([]string, len(set.Groups))
	for i, g := range set.Groups {
		parts[i] = fmt.Sprintf("%s=%d", g.Category, len(g.Names))
	}

	return strings.Join(parts, ", ")
}

func directive(res *batch.Result) string {
	if res.Set.Directive.UsePreDenoised {
		return "use `" + res.Paths.PreDenoised + "`"
	}

	return ""
}
