// Package classifier is the HTTP client for the external image classification
// service.
//
// The service exposes POST /predict accepting a multipart upload in the
// "image" field and answers with the predicted class index and label. The
// client treats the model as a black box: it uploads bytes, decodes the reply,
// and reports transport and status failures as errors. A reply whose label is
// missing or not a string is returned with a nil Label so callers can reject it
// as invalid input.
package classifier
