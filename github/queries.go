package github

// Documents sent to the GraphQL endpoint. Aliases shape the responses into
// the types in types.go.
const (
	ViewerQuery = `query {
  rateLimit { cost remaining }
  viewer {
    avatarUrl
    login
    name
    url
    followers { totalCount }
    repositories(first: 100, orderBy: {field: PUSHED_AT, direction: DESC}) {
      totalCount
      nodes { name owner { login } }
    }
  }
}`

	UserQuery = `query ($user: String!) {
  rateLimit { cost remaining }
  user(login: $user) {
    avatarUrl
    login
    name
    url
    followers { totalCount }
    repositories(first: 100, orderBy: {field: PUSHED_AT, direction: DESC}) {
      totalCount
      nodes { name owner { login } }
    }
  }
}`

	OrganizationQuery = `query ($organization: String!) {
  rateLimit { cost remaining }
  organization(login: $organization) {
    avatarUrl
    login
    name
    url
    repositories(first: 100, orderBy: {field: PUSHED_AT, direction: DESC}) {
      totalCount
      nodes { name owner { login } }
    }
  }
}`

	RepositoryQuery = `query ($owner: String!, $repository: String!) {
  rateLimit { cost remaining }
  repository(owner: $owner, name: $repository) {
    name
    full_name: nameWithOwner
    description
    url
    createdAt
    pushedAt
    updatedAt
    stargazers_count: stargazerCount
    forks_count: forkCount
    watchers { totalCount }
    discussions(first: 10, orderBy: {field: CREATED_AT, direction: DESC}) {
      total: totalCount
      discussions: nodes { title url number }
    }
    issues(first: 100, orderBy: {field: CREATED_AT, direction: DESC}) {
      total: totalCount
      items: nodes {
        title url number state createdAt updatedAt closedAt closed
        author { avatarUrl login }
      }
    }
    issuesOpen: issues(states: OPEN) { total: totalCount }
    pullRequests(first: 100, orderBy: {field: CREATED_AT, direction: DESC}) {
      total: totalCount
      items: nodes {
        title url number state createdAt updatedAt closedAt closed
        author { avatarUrl login }
      }
    }
    pullRequestsOpen: pullRequests(states: OPEN) { total: totalCount }
    release: latestRelease { name url tag: tagName }
    refs(refPrefix: "refs/tags/", first: 1, orderBy: {field: TAG_COMMIT_DATE, direction: DESC}) {
      tags: nodes { name target { url: commitUrl } }
    }
    primaryLanguage { id name color }
  }
}`
)
