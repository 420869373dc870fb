package systemusers

// Test hooks for the external handler tests.

type FakeAPI = fakeAPI

func NewFakeAPI() *FakeAPI { return newFakeAPI() }
