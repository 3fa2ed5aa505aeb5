package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

// renderReport writes the end-of-run summary, one line per artifact with
// its final status, then every failure.
func renderReport(w io.Writer, st *styles.Styles, r *domain.BatchReport) {
	var b strings.Builder

	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(&b, "%s %s\n", st.Title.Render("Run"), r.RunID)
	fmt.Fprintf(&b, "%d artifacts in %s\n\n", len(r.Artifacts), elapsed)
	for _, status := range domain.AllStatuses {
		fmt.Fprintf(&b, "%s %d\n", st.Status(status).Render(fmt.Sprintf("%-18s", status)), r.Count(status))
	}

	if len(r.RegenCounts) > 0 {
		b.WriteString("\n")
		for _, status := range []domain.RegenerationStatus{domain.RegenSuccess, domain.RegenWarning, domain.RegenFailure} {
			label := fmt.Sprintf("%-18s", "regen "+status.String())
			fmt.Fprintf(&b, "%s %d\n", st.Regeneration(status).Render(label), r.RegenCounts[status])
		}
	}

	fmt.Fprintln(w, st.Box.Render(strings.TrimRight(b.String(), "\n")))

	if len(r.Artifacts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Subtitle.Render("Artifacts"))
		for _, a := range r.Artifacts {
			fmt.Fprint(w, "  ")
			renderArtifact(w, st, a)
		}
	}

	if len(r.Failures) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Subtitle.Render("Failures"))
	for _, f := range r.Failures {
		target := f.ArtifactKey
		if f.Transformation != "" {
			target += " [" + f.Transformation + "]"
		}
		fmt.Fprintf(w, "  %s %s: %s\n", failureStyle(st, f.Kind).Render(string(f.Kind)), target, f.Reason)
	}
}

// renderArtifact writes one progress line per finished artifact.
func renderArtifact(w io.Writer, st *styles.Styles, a domain.ArtifactReport) {
	status := a.FinalStatus()
	line := fmt.Sprintf("%s %s", st.Status(status).Render(fmt.Sprintf("%-16s", status)), a.Key)
	if a.Regeneration != nil {
		line += " " + st.Regeneration(a.Regeneration.Status).Render("(regen "+a.Regeneration.Status.String()+")")
	}
	fmt.Fprintln(w, line)
}

// renderPreviews writes one line per planned application, with the patch
// when showDiff is set.
func renderPreviews(w io.Writer, st *styles.Styles, previews []driving.Preview, showDiff bool) {
	counts := make(map[domain.MatchKind]int)
	for _, p := range previews {
		counts[p.Classification.Kind]++

		var label string
		switch p.Classification.Kind {
		case domain.MatchAnchored:
			label = st.Success.Render(fmt.Sprintf("%-16s", "would apply"))
		case domain.MatchAlreadyApplied:
			label = st.Muted.Render(fmt.Sprintf("%-16s", "already applied"))
		default:
			label = st.Warning.Render(fmt.Sprintf("%-16s", "anchor not found"))
		}
		fmt.Fprintf(w, "%s %s [%s]", label, p.ArtifactKey, p.Transformation)
		if p.Classification.Kind == domain.MatchNotFound && p.Classification.Reason != "" {
			fmt.Fprintf(w, ": %s", p.Classification.Reason)
		}
		fmt.Fprintln(w)

		if showDiff && p.WouldChange() {
			renderPatch(w, st, p.Patch)
		}
	}

	fmt.Fprintf(w, "\n%d would apply, %d already applied, %d anchor not found\n",
		counts[domain.MatchAnchored], counts[domain.MatchAlreadyApplied], counts[domain.MatchNotFound])
}

func renderPatch(w io.Writer, st *styles.Styles, patch string) {
	for _, line := range patchLines(patch) {
		switch {
		case strings.HasPrefix(line, "+"):
			line = st.Added.Render(line)
		case strings.HasPrefix(line, "-"):
			line = st.Removed.Render(line)
		case strings.HasPrefix(line, "@@"):
			line = st.Muted.Render(line)
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// patchLines decodes the escaped hunks of a patch into one display line
// per text line, each carrying its +, - or space prefix.
func patchLines(patch string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		if line == "" || strings.HasPrefix(line, "@@") {
			out = append(out, line)
			continue
		}
		op, body := line[:1], line[1:]
		if decoded, err := url.PathUnescape(body); err == nil {
			body = decoded
		}
		for _, text := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
			out = append(out, op+text)
		}
	}
	return out
}

func failureStyle(st *styles.Styles, kind domain.FailureKind) lipgloss.Style {
	switch kind {
	case domain.FailureAnchorNotFound, domain.FailureRegenerationWarning:
		return st.Warning
	default:
		return st.Error
	}
}
