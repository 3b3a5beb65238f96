package models

const (
	OpEncode = "encode"
	OpDecode = "decode"
	OpRemove = "remove"
)
