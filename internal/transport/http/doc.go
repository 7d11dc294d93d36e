// Package http exposes the batch pipeline over HTTP: source file
// management, phase jobs and report preview.
//
// Routes (mounted by the app package):
//
//	GET    /api/files                list sources with status
//	POST   /api/files                upload sources (multipart "files")
//	DELETE /api/files/{name}         remove a source
//	GET    /api/files/{name}/report  preview the latest report
//	POST   /api/phases/{kind}        queue extract, finalize or run
//	GET    /api/jobs                 list jobs
//	GET    /api/jobs/{id}            job status
//	DELETE /api/jobs/{id}            cancel a job
//
// Errors are RFC 7807 problem bodies built by the errors package.
package http
