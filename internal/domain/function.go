package domain

// FunctionInfo describes a deployed Lambda function as seen by the edge
// checkers: the function ARN, the execution role it runs as, and its region.
type FunctionInfo struct {
	FunctionArn string `json:"function_arn"`
	RoleArn     string `json:"role_arn"`
	Region      string `json:"region"`
}
