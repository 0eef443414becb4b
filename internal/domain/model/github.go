package model

// Profile is the subset of a GitHub user profile the site shows.
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

// Repository is one public repository with its star count.
type Repository struct {
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	Language string `json:"language,omitempty"`
	Fork     bool   `json:"fork"`
}
