package blocklist

import (
	"path"
	"strconv"
)

// Result identifies where a listed key was published.
type Result struct {
	Repo     string `json:"repo,omitempty"`
	RepoID   int    `json:"repoID"`
	RepoType string `json:"repoType,omitempty"`
	RepoPath string `json:"repoPath,omitempty"`
	RepoName string `json:"repoName,omitempty"`
	KeyPath  string `json:"keyPath,omitempty"`
}

func (r *Result) ID() string {
	if r.KeyPath == "" {
		return "badkeys-" + r.RepoName + "-" + strconv.Itoa(r.RepoID)
	}
	return "badkeys-" + r.RepoName + "-" + r.KeyPath
}

// URL links to the published key, when its location is known.
func (r *Result) URL() string {
	if r.KeyPath == "" || r.Repo == "" {
		return ""
	}
	if r.RepoType != "github" {
		return "https://" + r.RepoType + "/" + path.Join(r.Repo, "blob", r.RepoPath, r.KeyPath)
	}
	return "https://github.com/" + path.Join(r.Repo, "blob", r.RepoPath, r.KeyPath)
}
