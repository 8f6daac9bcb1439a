package app

// starterConfig is the template written by `pzsh init`. Everything in it is
// a literal or a reference the resolver can expand at compile time; nothing
// spawns a subprocess.
func starterConfig(shell string) string {
	cfg := `# pzsh configuration. Compile with: pzsh compile
# Every value here is resolved at compile time. Subprocess substitution
# ($(...) or backticks) is rejected; paste resolved values instead.

performance {
  startup_budget_ms = 10
  prompt_budget_ms  = 2
}

env {
  EDITOR = "vim"
  # References to other entries and to the host environment are expanded
  # at compile time:
  # GOPATH = "${host.HOME}/go"
  # GOBIN  = "${env.GOPATH}/bin"
}

aliases {
  ll = "ls -la"
  la = "ls -A"
}

features {
  enabled = ["git"]
  lazy    = ["docker"]
}

prompt {
  theme      = "simple"
  git_ttl_ms = 1000
}
`
	if shell == "bash" {
		return cfg
	}
	return cfg + `
raw {
  zshrc = <<-EOT
    setopt HIST_IGNORE_DUPS
    setopt AUTO_CD
  EOT
}
`
}
