package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrPackageNotFound    = errors.New("tryout package not found")
	ErrPackageNotReady    = errors.New("tryout package is not ready to be taken")
	ErrTestNotFound       = errors.New("test session not found")
	ErrTestInProgress     = errors.New("a test session for this scope is already in progress")
	ErrTestSubmitted      = errors.New("test session already submitted")
	ErrQuestionNotInScope = errors.New("question does not belong to this test session")
	ErrChoiceNotInQuest   = errors.New("choice does not belong to this question")
	ErrScopeRequired      = errors.New("either categories or a tryout package must be selected")
)
