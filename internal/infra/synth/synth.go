// Where: internal/infra/synth/synth.go
// What: Map a topology graph onto CloudFormation resources.
// Why: Produce the template handed to the external deployment engine.
package synth

import (
	"errors"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/topology"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	// AssetBucketParameter names the template parameter holding the bucket
	// that stores staged code assets.
	AssetBucketParameter = "AssetBucket"

	alarmPeriodSeconds    = 300
	codeDeployLambdaRole  = "service-role/AWSCodeDeployRoleForLambdaLimited"
	codeDeployPrincipal   = "codedeploy.amazonaws.com"
	apiGatewayPrincipal   = "apigateway.amazonaws.com"
	lambdaInvocationsPath = ":lambda:path/2015-03-31/functions/"
)

var (
	errGraphRequired     = errors.New("topology graph is required")
	errAssetKeyRequired  = errors.New("asset key is required")
	errUnsupportedFormat = errors.New("unsupported template format")
)

// Asset locates the staged code bundle of the compute unit.
type Asset struct {
	Key  string
	Hash string
}

// Options tunes synthesis.
type Options struct {
	Asset       Asset
	Description string
}

type synthesizer struct {
	graph   *topology.Graph
	scope   *topology.Scope
	tmpl    *Template
	stageID string
}

// Synthesize converts graph into a template. The graph is assumed valid;
// synthesis only adds the engine-specific glue resources around it.
func Synthesize(graph *topology.Graph, opts Options) (*Template, error) {
	if graph == nil {
		return nil, errGraphRequired
	}
	if strings.TrimSpace(opts.Asset.Key) == "" {
		return nil, errAssetKeyRequired
	}
	s := &synthesizer{
		graph: graph,
		scope: graph.Scope,
		tmpl: &Template{
			AWSTemplateFormatVersion: templateFormatVersion,
			Description:              opts.Description,
			Parameters: map[string]Parameter{
				AssetBucketParameter: {
					Type:        "String",
					Description: "S3 bucket holding staged code assets",
				},
			},
			Resources:  map[string]Resource{},
			Outputs:    map[string]Output{},
			logicalIDs: map[topology.ResourceID]string{},
		},
	}
	for _, entity := range graph.Entities() {
		s.tmpl.logicalIDs[entity.ID()] = s.entityLogicalID(entity)
	}

	s.identity(graph.Identity)
	s.unit(graph.Unit, opts.Asset)
	s.version(graph.Version)
	s.alias(graph.Alias)
	s.alarm(graph.Alarm)
	s.rollout(graph.Rollout)
	s.endpoint(graph.Endpoint)
	s.outputs()
	return s.tmpl, nil
}

func (s *synthesizer) entityLogicalID(entity topology.Entity) string {
	if version, ok := entity.(*topology.ComputeVersion); ok {
		// a new label must yield a new version resource
		return LogicalID(s.scope.ID, string(version.ID()), version.Label)
	}
	return LogicalID(s.scope.ID, string(entity.ID()))
}

func (s *synthesizer) id(entity topology.Entity) string {
	return s.tmpl.logicalIDs[entity.ID()]
}

func (s *synthesizer) childID(parent topology.Entity, parts ...string) string {
	return LogicalID(append([]string{s.scope.ID, string(parent.ID())}, parts...)...)
}

func (s *synthesizer) applicationID(policy *topology.RolloutPolicy) string {
	if policy.ApplicationID != "" {
		return LogicalID(s.scope.ID, string(policy.ApplicationID))
	}
	return s.childID(policy, "Application")
}

func (s *synthesizer) dependsOn(entity topology.Entity) []string {
	deps := s.graph.Dependencies(entity.ID())
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		out = append(out, s.tmpl.logicalIDs[dep])
	}
	return out
}

func (s *synthesizer) identity(role *topology.IdentityBinding) {
	s.tmpl.Resources[s.id(role)] = serviceRole(role.TrustPrincipal, role.ManagedPolicies)
}

func serviceRole(principal string, policies []string) Resource {
	arns := make([]any, 0, len(policies))
	for _, policy := range policies {
		arns = append(arns, managedPolicyArn(policy))
	}
	return Resource{
		Type: "AWS::IAM::Role",
		Properties: map[string]any{
			"AssumeRolePolicyDocument": map[string]any{
				"Version": "2012-10-17",
				"Statement": []any{map[string]any{
					"Effect":    "Allow",
					"Principal": map[string]any{"Service": principal},
					"Action":    "sts:AssumeRole",
				}},
			},
			"ManagedPolicyArns": arns,
		},
	}
}

func managedPolicyArn(policy string) any {
	if strings.HasPrefix(policy, "arn:") {
		return policy
	}
	return join("arn:", ref("AWS::Partition"), ":iam::aws:policy/"+policy)
}

func (s *synthesizer) unit(fn *topology.ComputeUnit, asset Asset) {
	s.tmpl.Resources[s.id(fn)] = Resource{
		Type: "AWS::Lambda::Function",
		Properties: map[string]any{
			"Code": map[string]any{
				"S3Bucket": ref(AssetBucketParameter),
				"S3Key":    asset.Key,
			},
			"Handler": fn.Handler,
			"Role":    getAtt(s.id(fn.Identity), "Arn"),
			"Runtime": fn.Runtime,
		},
		DependsOn: s.dependsOn(fn),
		Metadata: map[string]any{
			"canary:asset-path": fn.CodeSource,
			"canary:asset-hash": asset.Hash,
		},
	}
}

func (s *synthesizer) version(version *topology.ComputeVersion) {
	s.tmpl.Resources[s.id(version)] = Resource{
		Type: "AWS::Lambda::Version",
		Properties: map[string]any{
			"FunctionName": ref(s.id(version.Unit)),
			"Description":  version.Description,
		},
		Metadata: map[string]any{"canary:label": version.Label},
	}
}

func (s *synthesizer) alias(alias *topology.ComputeAlias) {
	app := s.applicationID(s.graph.Rollout)
	s.tmpl.Resources[s.id(alias)] = Resource{
		Type: "AWS::Lambda::Alias",
		Properties: map[string]any{
			"FunctionName":    ref(s.id(alias.Version.Unit)),
			"FunctionVersion": getAtt(s.id(alias.Version), "Version"),
			"Name":            alias.Name,
		},
		UpdatePolicy: map[string]any{
			"CodeDeployLambdaAliasUpdate": map[string]any{
				"ApplicationName":     ref(app),
				"DeploymentGroupName": ref(s.id(s.graph.Rollout)),
			},
		},
	}
}

func (s *synthesizer) alarm(alarm *topology.HealthAlarm) {
	props := map[string]any{
		"AlarmName":          alarm.Name,
		"ComparisonOperator": "GreaterThanOrEqualToThreshold",
		"EvaluationPeriods":  alarm.EvaluationPeriods,
		"Threshold":          alarm.Threshold,
		"MetricName":         alarm.Metric,
		"Namespace":          "AWS/Lambda",
		"Period":             alarmPeriodSeconds,
		"Statistic":          "Sum",
		"Dimensions": []any{map[string]any{
			"Name":  "FunctionName",
			"Value": ref(s.id(alarm.Source)),
		}},
	}
	if alarm.Description != "" {
		props["AlarmDescription"] = alarm.Description
	}
	s.tmpl.Resources[s.id(alarm)] = Resource{Type: "AWS::CloudWatch::Alarm", Properties: props}
}

func (s *synthesizer) rollout(policy *topology.RolloutPolicy) {
	appID := s.applicationID(policy)
	s.tmpl.Resources[appID] = Resource{
		Type: "AWS::CodeDeploy::Application",
		Properties: map[string]any{
			"ApplicationName": policy.ApplicationName,
			"ComputePlatform": "Lambda",
		},
	}

	roleID := s.childID(policy, "ServiceRole")
	s.tmpl.Resources[roleID] = serviceRole(codeDeployPrincipal, []string{codeDeployLambdaRole})

	alarms := make([]any, 0, len(policy.AbortAlarms))
	for _, alarm := range policy.AbortAlarms {
		alarms = append(alarms, map[string]any{"Name": ref(s.id(alarm))})
	}
	s.tmpl.Resources[s.id(policy)] = Resource{
		Type: "AWS::CodeDeploy::DeploymentGroup",
		Properties: map[string]any{
			"ApplicationName":      ref(appID),
			"ServiceRoleArn":       getAtt(roleID, "Arn"),
			"DeploymentConfigName": policy.Schedule.DeploymentConfigName(),
			"DeploymentStyle": map[string]any{
				"DeploymentType":   "BLUE_GREEN",
				"DeploymentOption": "WITH_TRAFFIC_CONTROL",
			},
			"AlarmConfiguration": map[string]any{
				"Enabled": true,
				"Alarms":  alarms,
			},
			"AutoRollbackConfiguration": map[string]any{
				"Enabled": true,
				"Events":  []any{"DEPLOYMENT_FAILURE", "DEPLOYMENT_STOP_ON_ALARM"},
			},
		},
	}
}

func (s *synthesizer) endpoint(endpoint *topology.PublicEndpoint) {
	apiID := s.id(endpoint)
	fnID := s.id(endpoint.Target)
	resourceID := s.childID(endpoint, "Default", endpoint.RoutePattern)
	methodID := s.childID(endpoint, "Default", endpoint.RoutePattern, endpoint.Method)
	deploymentID := s.childID(endpoint, "Deployment", s.graph.Version.Label)
	stageID := s.childID(endpoint, "DeploymentStage", endpoint.Stage)
	permissionID := s.childID(endpoint, "Default", endpoint.RoutePattern, endpoint.Method, "Permission")

	props := map[string]any{"Name": endpoint.Name}
	if endpoint.Description != "" {
		props["Description"] = endpoint.Description
	}
	s.tmpl.Resources[apiID] = Resource{Type: "AWS::ApiGateway::RestApi", Properties: props}
	s.tmpl.Resources[resourceID] = Resource{
		Type: "AWS::ApiGateway::Resource",
		Properties: map[string]any{
			"ParentId":  getAtt(apiID, "RootResourceId"),
			"PathPart":  endpoint.RoutePattern,
			"RestApiId": ref(apiID),
		},
	}
	s.tmpl.Resources[methodID] = Resource{
		Type: "AWS::ApiGateway::Method",
		Properties: map[string]any{
			"HttpMethod":        endpoint.Method,
			"ResourceId":        ref(resourceID),
			"RestApiId":         ref(apiID),
			"AuthorizationType": "NONE",
			"Integration": map[string]any{
				"Type":                  "AWS_PROXY",
				"IntegrationHttpMethod": "POST",
				"Uri": join(
					"arn:", ref("AWS::Partition"), ":apigateway:", ref("AWS::Region"),
					lambdaInvocationsPath, getAtt(fnID, "Arn"), "/invocations",
				),
			},
		},
	}
	s.tmpl.Resources[deploymentID] = Resource{
		Type:       "AWS::ApiGateway::Deployment",
		Properties: map[string]any{"RestApiId": ref(apiID), "Description": "Automatically created by the RestApi construct"},
		DependsOn:  []string{methodID, resourceID},
	}
	s.tmpl.Resources[stageID] = Resource{
		Type: "AWS::ApiGateway::Stage",
		Properties: map[string]any{
			"DeploymentId": ref(deploymentID),
			"RestApiId":    ref(apiID),
			"StageName":    endpoint.Stage,
		},
	}
	s.tmpl.Resources[permissionID] = Resource{
		Type: "AWS::Lambda::Permission",
		Properties: map[string]any{
			"Action":       "lambda:InvokeFunction",
			"FunctionName": getAtt(fnID, "Arn"),
			"Principal":    apiGatewayPrincipal,
			"SourceArn": join(
				"arn:", ref("AWS::Partition"), ":execute-api:", ref("AWS::Region"), ":", ref("AWS::AccountId"),
				":", ref(apiID), "/", ref(stageID), "/*/*",
			),
		},
	}
	s.stageID = stageID
}

func (s *synthesizer) outputs() {
	for _, output := range s.graph.Outputs() {
		apiID := s.tmpl.logicalIDs[output.Value.API]
		s.tmpl.Outputs[output.Name] = Output{
			Description: output.Description,
			Value: join(
				"https://", ref(apiID), ".execute-api.", ref("AWS::Region"), ".", ref("AWS::URLSuffix"),
				"/", ref(s.stageID), "/",
			),
		}
	}
}

// Summary lists resource types and counts, for display.
func (t *Template) Summary() map[string]int {
	out := map[string]int{}
	for _, resource := range t.Resources {
		out[resource.Type]++
	}
	return out
}
