// Package preflight provides readiness checks for external tools and
// filesystem paths the render pipeline depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before processing each queue job.
//     If any check fails, the lane halts to avoid wasting minutes on a doomed run.
//   - The CLI "brainrot status" command uses individual check functions
//     (CheckOllama, CheckDirectoryAccess, CheckSystemDeps) to display health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
