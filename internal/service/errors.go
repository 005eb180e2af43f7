package service

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserNotFound       = "User not found"
	MsgAuthRequired       = "Authentication required"
	MsgInvalidToken       = "Invalid or expired token"
	MsgTaskNotFound       = "Task not found"
	MsgAccessDenied       = "Access denied"
	MsgCreatorOnlyUpdate  = "Only task creator can update"
	MsgCreatorOnlyDelete  = "Only task creator can delete"
	MsgCreatorOnlyAssign  = "Only task creator can assign"
)

func invalidInput(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func internalf(format string, args ...interface{}) error {
	return status.Errorf(codes.Internal, format, args...)
}

// Code extracts the taxonomy code from an error returned by this package.
// Errors that did not originate here report codes.Internal.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Internal
}
