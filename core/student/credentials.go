package student

// CredentialIssuer issues the initial plaintext password of a newly generated login handle.
type CredentialIssuer interface {
	Issue(handle string) string
}

// LocalPartIssuer issues the local part of the handle: `std_02@school.edu` gets `std_02`.
type LocalPartIssuer struct{}

func (LocalPartIssuer) Issue(handle string) string {
	return LocalPart(handle)
}
