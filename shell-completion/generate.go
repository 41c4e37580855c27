//go:build generate

//go:generate sh -c "go run ../cmd/idbridge/main.go completion bash > bash/idbridge"
//go:generate sh -c "go run ../cmd/idbridge/main.go completion zsh > zsh/_idbridge"
//go:generate sh -c "go run ../cmd/idbridge/main.go completion fish > fish/idbridge.fish"

package shell_completion
