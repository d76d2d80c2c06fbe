package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/replayrig/internal/execshell"
)

const (
	apiSubcommandConstant                   = "api"
	methodFlagConstant                      = "-X"
	inputFlagConstant                       = "--input"
	stdinReferenceConstant                  = "-"
	acceptHeaderFlagConstant                = "-H"
	acceptHeaderValueConstant               = "Accept: application/vnd.github+json"
	httpMethodPostConstant                  = "POST"
	issuesEndpointTemplateConstant          = "repos/%s/issues"
	repositoryFieldNameConstant             = "repository"
	titleFieldNameConstant                  = "title"
	requiredValueMessageConstant            = "value required"
	repositoryFormatMessageConstant         = "expected owner/name"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	repositorySeparatorConstant             = "/"
	createIssueOperationNameConstant        = OperationName("CreateIssue")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// IssueRequest is the issue to open.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
}

// Issue is the subset of the created issue the caller reports back.
type Issue struct {
	Number int
	URL    string
}

// GitHubCommandExecutor is the part of execshell.ShellExecutor the client needs.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client issues gh api calls through an executor.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates the gh output was not the expected JSON.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates the request body could not be encoded.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CreateIssue opens an issue in repository ("owner/name") with gh api,
// sending the request as JSON on standard input.
func (client *Client) CreateIssue(executionContext context.Context, repository string, request IssueRequest) (Issue, error) {
	repositoryIdentifier, repositoryError := validateRepository(repository)
	if repositoryError != nil {
		return Issue{}, repositoryError
	}
	if len(strings.TrimSpace(request.Title)) == 0 {
		return Issue{}, InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Labels []string `json:"labels"`
	}{
		Title:  request.Title,
		Body:   request.Body,
		Labels: append([]string{}, request.Labels...),
	}
	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return Issue{}, PayloadEncodingError{Operation: createIssueOperationNameConstant, Cause: encodingError}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			fmt.Sprintf(issuesEndpointTemplateConstant, repositoryIdentifier),
			methodFlagConstant,
			httpMethodPostConstant,
			inputFlagConstant,
			stdinReferenceConstant,
			acceptHeaderFlagConstant,
			acceptHeaderValueConstant,
		},
		StandardInput: payloadBytes,
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return Issue{}, OperationError{Operation: createIssueOperationNameConstant, Cause: executionError}
	}

	var response struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return Issue{}, ResponseDecodingError{Operation: createIssueOperationNameConstant, Cause: decodingError}
	}

	return Issue{Number: response.Number, URL: response.HTMLURL}, nil
}

func validateRepository(repository string) (string, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	owner, name, found := strings.Cut(repositoryIdentifier, repositorySeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositorySeparatorConstant) {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: repositoryFormatMessageConstant}
	}
	return repositoryIdentifier, nil
}
